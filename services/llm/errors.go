// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package llm

import "fmt"

// ErrorKind classifies a gateway failure.
type ErrorKind string

const (
	// KindUpstreamStatus means the upstream answered with a non-2xx status.
	KindUpstreamStatus ErrorKind = "upstream_status"
	// KindTransport means the request never completed: DNS, connection
	// reset, TLS failure.
	KindTransport ErrorKind = "transport"
	// KindTimeout means the bounded wait for the upstream was exceeded.
	KindTimeout ErrorKind = "timeout"
	// KindMalformed means the upstream body was not decodable JSON. A
	// decodable body that merely lacks assistant content is NOT this kind;
	// that is a contentless success.
	KindMalformed ErrorKind = "malformed_response"
)

// GatewayError is a classified upstream failure.
//
// Status and Body are populated for KindUpstreamStatus so the caller can
// log diagnostics; the HTTP surface only ever shows the client a generic
// message. Err holds the underlying transport or decode error when one
// exists.
type GatewayError struct {
	Kind   ErrorKind
	Status int
	Body   string
	Err    error
}

func (e *GatewayError) Error() string {
	switch e.Kind {
	case KindUpstreamStatus:
		return fmt.Sprintf("completion upstream returned status %d", e.Status)
	case KindTimeout:
		return "completion upstream timed out"
	case KindMalformed:
		return "completion upstream returned a malformed response"
	default:
		return fmt.Sprintf("completion upstream unreachable: %v", e.Err)
	}
}

func (e *GatewayError) Unwrap() error { return e.Err }
