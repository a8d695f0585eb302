package explorer

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/lukehollenback/exprobe/capability"
	"github.com/lukehollenback/exprobe/console"
	"github.com/lukehollenback/exprobe/constants"
)

//
// SelectEndpoint pages through every endpoint of the current client, two columns at a time, each
// marked with its support status. It returns false if the operator backs out with "q".
//
func (o *Explorer) SelectEndpoint(ctx context.Context) (string, bool, error) {
	client := o.session.Client()
	if client == nil {
		o.io.Error("No exchange instance available")

		return "", false, nil
	}

	names := client.Endpoints().Names()
	if len(names) == 0 {
		o.io.Warn("The exchange does not expose any endpoints")

		return "", false, nil
	}

	has := client.Has()
	pages := (len(names) + constants.PageSize - 1) / constants.PageSize
	page := 0

	for {
		start := page * constants.PageSize
		end := start + constants.PageSize
		if end > len(names) {
			end = len(names)
		}

		current := names[start:end]

		//
		// The left column holds the first half of the page, the right column the rest.
		//
		mid := (len(current) + 1) / 2
		rows := make([][]string, 0, mid)

		for i := 0; i < mid; i++ {
			row := []string{
				strconv.Itoa(start + i + 1),
				capability.Lookup(has, current[i]).Glyph(),
				current[i],
				"", "", "",
			}

			if j := mid + i; j < len(current) {
				row[3] = strconv.Itoa(start + j + 1)
				row[4] = capability.Lookup(has, current[j]).Glyph()
				row[5] = current[j]
			}

			rows = append(rows, row)
		}

		o.io.Table(console.Table{
			Title:   fmt.Sprintf("Available Endpoints with Support Status (Page %d of %d)", page+1, pages),
			Headers: []string{"Index", "Status", "Method", "Index", "Status", "Method"},
			Rows:    rows,
		})

		o.io.Println()
		o.io.Println("Legend: ✓ Supported | ⚡ Emulated | ✗ Not Supported | ? Unknown")

		if page > 0 {
			o.io.Info("Enter 'p' for previous page")
		}

		if end < len(names) {
			o.io.Info("Enter 'n' for next page")
		}

		o.io.Info("Enter an endpoint number (1-%d) to test it", len(names))
		o.io.Info("Enter 'q' to return to main menu")

		input, err := o.io.Prompt(ctx, "Endpoint", "")
		if err != nil {
			return "", false, err
		}

		switch input = strings.ToLower(strings.TrimSpace(input)); {
		case input == "q":
			return "", false, nil
		case input == "p":
			if page > 0 {
				page--
			}
		case input == "n" || input == "":
			if end < len(names) {
				page++
			}
		default:
			n, err := strconv.Atoi(input)
			if err != nil {
				o.io.Error("Invalid input. Please enter a number.")
				continue
			}

			if n < 1 || n > len(names) {
				o.io.Error("Invalid endpoint number. Must be 1-%d", len(names))
				continue
			}

			return names[n-1], true, nil
		}
	}
}
