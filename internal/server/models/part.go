package models

// Part identifies one uploaded chunk of a multipart upload. The ETag is
// produced by the object store when the part is accepted and must be echoed
// back verbatim on completion.
type Part struct {
	Number int32  `json:"number"`
	ETag   string `json:"etag"`
}
