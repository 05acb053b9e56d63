package securenet

import "github.com/paywire/paywire/provider"

func init() {
	provider.Register("securenet", NewProvider)
}
