// Resonata - Social Music Review and Recommendation Platform
// Copyright 2026 Resonata contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/resonata-fm/resonata

package catalog

import "errors"

var (
	// ErrMissingCredentials indicates no client ID/secret pair is
	// configured. This is the only configuration-fatal error the engine
	// propagates; per-item lookup failures are absorbed by callers.
	ErrMissingCredentials = errors.New("catalog credentials are not configured")

	// ErrNotFound indicates the provider returned HTTP 404 for an entity.
	ErrNotFound = errors.New("catalog entity not found")
)
