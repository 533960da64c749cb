// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("datasets/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	frame, err := dataset.Load(ctx, store, "points.csv.zst", "features")
//
// Objects are fetched with concurrent ranged GETs through the SDK's
// download manager.
package s3
