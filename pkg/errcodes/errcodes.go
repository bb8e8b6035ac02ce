package errcodes

import "git.appkode.ru/pub/go/failure"

const (
	InternalServerError failure.ErrorCode = "InternalServerError"
	TimeoutExceeded     failure.ErrorCode = "TimeoutExceeded"
	Forbidden           failure.ErrorCode = "Forbidden"
	ValidationError     failure.ErrorCode = "ValidationError"
	NotFound            failure.ErrorCode = "NotFound"

	// Offer book.
	InvalidSide            failure.ErrorCode = "InvalidSide"
	InvalidAction          failure.ErrorCode = "InvalidAction"
	InvalidProxy           failure.ErrorCode = "InvalidProxy"
	StoreUnavailable       failure.ErrorCode = "StoreUnavailable"
	MarketplaceUnreachable failure.ErrorCode = "MarketplaceUnreachable"
	MalformedUpstream      failure.ErrorCode = "MalformedUpstream"
	NoData                 failure.ErrorCode = "NoData"
	SettingNotFound        failure.ErrorCode = "SettingNotFound"
)
