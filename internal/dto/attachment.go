package dto

// PresignAttachmentRequest asks for an upload slot in the blob store.
type PresignAttachmentRequest struct {
	ContentType string `json:"contentType"`
}

// PresignAttachmentResponse carries the storage key and the presigned PUT URL.
// The client uploads the file to UploadURL and then references Key from the
// attachment fields of a loan, repayment or gift group request.
type PresignAttachmentResponse struct {
	Key       string `json:"key"`
	UploadURL string `json:"uploadURL"`
}
