package oauth

import "github.com/andig/vinfast/util/oauth/internal"

// Token re-exports the internal token type for use outside this package tree
type Token = internal.Token
