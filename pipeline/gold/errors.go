package gold

import "github.com/aldress/medallion/pkg/errors"

// Gold-layer error codes
var (
	ErrListFailed          = errors.MustNewCode("gold.list_failed")
	ErrDownloadFailed      = errors.MustNewCode("gold.download_failed")
	ErrDecodeFailed        = errors.MustNewCode("gold.decode_failed")
	ErrEncodeFailed        = errors.MustNewCode("gold.encode_failed")
	ErrUploadFailed        = errors.MustNewCode("gold.upload_failed")
	ErrContainerSetup      = errors.MustNewCode("gold.container_setup_failed")
	ErrMetadataWriteFailed = errors.MustNewCode("gold.metadata_write_failed")
	ErrNoCandidates        = errors.MustNewCode("gold.no_candidates")
	ErrMissingColumn       = errors.MustNewCode("gold.missing_column")
	ErrRunCanceled         = errors.MustNewCode("gold.run_canceled")
)
