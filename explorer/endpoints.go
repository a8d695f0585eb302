package explorer

import (
	"context"
	"strings"

	"github.com/lukehollenback/exprobe/capability"
	"github.com/lukehollenback/exprobe/console"
	"github.com/lukehollenback/exprobe/exchange"
)

const maxDescription = 60

// Listing groups, in display order.
const (
	groupMarketData = "Market Data"
	groupTrading    = "Trading"
	groupAccount    = "Account"
	groupPublic     = "Public"
	groupOther      = "Other"
)

var (
	marketData = map[string]bool{
		"fetchTicker":    true,
		"fetchTickers":   true,
		"fetchOrderBook": true,
		"fetchOHLCV":     true,
	}

	accountWords = []string{"Balance", "Ledger", "Deposit", "Withdrawal", "Transaction", "MyTrades", "TradingFee"}
)

//
// groupOf decides which listing group an endpoint belongs to.
//
func groupOf(name string) string {
	switch {
	case marketData[name]:
		return groupMarketData
	case strings.HasPrefix(name, "watch"):
		return groupOther
	case strings.Contains(name, "Order"):
		return groupTrading
	case strings.HasPrefix(name, "fetch"):
		for _, w := range accountWords {
			if strings.Contains(name, w) {
				return groupAccount
			}
		}

		return groupPublic
	default:
		return groupOther
	}
}

//
// Group sorts every endpoint of a registry into the listing groups. Empty groups are left out.
//
func Group(r *exchange.Registry) capability.Buckets {
	order := []string{groupMarketData, groupTrading, groupAccount, groupPublic, groupOther}

	members := make(map[string][]string, len(order))
	for _, name := range r.Names() {
		g := groupOf(name)
		members[g] = append(members[g], name)
	}

	var out capability.Buckets
	for _, g := range order {
		if len(members[g]) > 0 {
			out = append(out, capability.Bucket{Category: g, Endpoints: members[g]})
		}
	}

	return out
}

//
// ListEndpoints prints every endpoint of the current client, grouped, and offers to save the list.
//
func (o *Explorer) ListEndpoints(ctx context.Context) error {
	client := o.session.Client()
	if client == nil {
		o.io.Error("No exchange instance available")

		return nil
	}

	registry := client.Endpoints()
	groups := Group(registry)

	for _, g := range groups {
		rows := make([][]string, 0, len(g.Endpoints))

		for _, name := range g.Endpoints {
			e, _ := registry.Get(name)
			rows = append(rows, []string{name, describe(e.Description)})
		}

		o.io.Table(console.Table{
			Title:   g.Category + " Endpoints",
			Headers: []string{"Method", "Description"},
			Rows:    rows,
		})
		o.io.Println()
	}

	if len(groups) == 0 {
		return nil
	}

	o.rule()
	o.io.Info("💾 Save endpoints information to JSON file?")

	ok, err := o.io.Confirm(ctx, "Save all endpoints data for reference?", false)
	if err != nil || !ok {
		return err
	}

	saved, err := o.writer.WriteEndpoints(ctx, client.ID(), groups)
	if err != nil {
		o.io.Error("❌ Error saving endpoints info to file: %s", err)
		o.io.Warn("Endpoints info was not saved")

		return nil
	}

	o.io.Success("✅ Endpoints info saved to: %s", saved.Path)
	o.io.Info("File contains %d endpoints across %d categories", registry.Len(), len(groups))
	o.reportSize(saved)

	return nil
}

func describe(s string) string {
	if s == "" {
		return "No description available"
	}

	if r := []rune(s); len(r) > maxDescription {
		return string(r[:maxDescription]) + "..."
	}

	return s
}
