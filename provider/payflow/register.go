package payflow

import "github.com/paywire/paywire/provider"

func init() {
	// Register Payflow dialect with the global registry
	provider.Register("payflow", NewProvider)
}
