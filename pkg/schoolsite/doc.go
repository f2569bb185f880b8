// Package schoolsite provides the content backend of a school website:
// database-backed records (certificates, hero slides, about and director
// bios, navigation, header, footer, contact info, stats and static pages)
// together with their media handling.
//
// Records declare their media fields statically through a manifest
// (see MediaField). Two collaborators work on those fields:
//
//   - a URLResolver (package mediaurl) turns a stored key into a URL a
//     client can fetch, whatever storage the key lives in;
//   - an Interceptor (package upload) pushes freshly submitted files to the
//     bucket under a collision-resistant key and rewrites the field before
//     the record is persisted.
//
// The Service type wires both around a Repository and a default BlobStore.
// Implementations of repositories (memory, Postgres) and blob stores
// (memory, filesystem, S3) are provided under subpackages.
package schoolsite
