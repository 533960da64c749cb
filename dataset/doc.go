// Package dataset provides the tabular inputs consumed by the trainer.
//
// A Source exposes dense vectors under a named column (by default
// "features"). Frame is the in-memory implementation. ReadCSV parses CSV
// text, Open reads a local file and Load reads any blobstore.BlobStore,
// decompressing .gz, .zst and .lz4 inputs by extension.
package dataset
