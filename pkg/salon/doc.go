// Package salon provides the asset lifecycle core for the salon backend.
//
// An Asset is a gallery item or service entry whose defining attribute is
// one or more images held in remote object storage. The Service coordinates
// three independently failing collaborators: locally staged uploads
// (StagingFile), a durable object store (BlobStore) and the metadata store
// (Repository). Mutations follow a fixed order (upload, then metadata
// commit, then broadcast) with compensating deletes on partial failure, so
// that a failed create or update never leaves a remote object referenced by
// a metadata record, and a committed metadata write is never rolled back by
// a later cleanup failure.
package salon
