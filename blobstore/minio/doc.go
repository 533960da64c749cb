// Package minio provides a blobstore.BlobStore for MinIO and other
// S3-compatible object stores.
//
// # Usage
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewEnvMinio(),
//	    Secure: false,
//	})
//	store := bkminio.NewStore(client, "datasets", "")
//	frame, err := dataset.Load(ctx, store, "points.csv", "features")
package minio
