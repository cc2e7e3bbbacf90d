// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"fmt"
	"os"
	"strings"

	reporterrors "github.com/sirseerhq/harness-report/internal/errors"
)

// AuthMethod identifies which header carries the credential.
type AuthMethod int

const (
	// AuthBearer sends "Authorization: Bearer <token>".
	AuthBearer AuthMethod = iota + 1
	// AuthAPIKey sends "x-api-key: <key>".
	AuthAPIKey
)

// Credentials holds the single credential a run authenticates with.
type Credentials struct {
	Method AuthMethod
	Secret string
}

// ResolveCredentials picks the credential for a run. Flags win over the
// environment as a whole: if either flag is set the environment is not
// consulted. Exactly one of token and API key must end up set.
func ResolveCredentials(flagToken, flagAPIKey string, cfg *Config) (*Credentials, error) {
	token, apiKey := strings.TrimSpace(flagToken), strings.TrimSpace(flagAPIKey)
	if token == "" && apiKey == "" {
		if cfg.Harness.AuthTokenEnv != "" {
			token = strings.TrimSpace(os.Getenv(cfg.Harness.AuthTokenEnv))
		}
		if cfg.Harness.APIKeyEnv != "" {
			apiKey = strings.TrimSpace(os.Getenv(cfg.Harness.APIKeyEnv))
		}
	}

	switch {
	case token != "" && apiKey != "":
		return nil, fmt.Errorf("%w: cannot use both --auth-token and --api-key, provide only one", reporterrors.ErrInvalidConfig)
	case token != "":
		return &Credentials{Method: AuthBearer, Secret: stripBearer(token)}, nil
	case apiKey != "":
		return &Credentials{Method: AuthAPIKey, Secret: apiKey}, nil
	default:
		return nil, fmt.Errorf("%w: either --auth-token or --api-key must be provided (or set %s / %s)",
			reporterrors.ErrInvalidConfig, cfg.Harness.AuthTokenEnv, cfg.Harness.APIKeyEnv)
	}
}

// stripBearer removes a leading "Bearer" scheme, in any letter case, so that
// a pasted Authorization value is not sent with the scheme twice.
func stripBearer(token string) string {
	const scheme = "bearer"
	if len(token) > len(scheme) && strings.EqualFold(token[:len(scheme)], scheme) && (token[len(scheme)] == ' ' || token[len(scheme)] == '\t') {
		return strings.TrimSpace(token[len(scheme):])
	}
	return token
}

// Header returns the header name and value carrying the credential.
func (c *Credentials) Header() (name, value string) {
	if c.Method == AuthAPIKey {
		return "x-api-key", c.Secret
	}
	return "Authorization", "Bearer " + c.Secret
}
