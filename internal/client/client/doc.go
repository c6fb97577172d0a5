// Package client talks to the directory server.
//
// Directory is the transport-agnostic contract used by the reconciler and
// the CLI. GRPCClient implements it over gRPC with the json codec, attaches
// the session token to every call and maps status codes to the sentinel
// errors of internal/common:
//
//   - Unavailable, DeadlineExceeded: common.ErrRemoteUnavailable
//   - Unauthenticated, PermissionDenied: common.ErrorUnauthorized
//   - NotFound: common.ErrorNotFound
//   - InvalidArgument: common.ErrorValidation
//   - AlreadyExists: common.ErrorConflict
package client
