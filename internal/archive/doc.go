// Package archive writes the local artifact bundle for a journal entry: the
// raw transcript, the polished payload, and a metadata file, all under a
// directory named by the capture timestamp and entry id.
package archive
