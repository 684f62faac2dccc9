package ingest

import "errors"

var (
	errCenterRequired          = errors.New("ingest: center_id required")
	errUnknownIntent           = errors.New("ingest: unknown intent")
	errNegativeDuration        = errors.New("ingest: duration must be >= 0")
	errNegativeErrors          = errors.New("ingest: error_logic must be >= 0")
	errTransferWithoutTransfer = errors.New("ingest: transfer_reason requires end_reason=transfer")
	errTransferReasonRequired  = errors.New("ingest: end_reason=transfer requires a transfer_reason")
	errUnknownTransferReason   = errors.New("ingest: unknown transfer_reason")
	errBadBirthdate            = errors.New("ingest: birthdate must be YYYY-MM-DD")
)
