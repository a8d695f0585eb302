package kraken

import (
	"fmt"

	"github.com/tidwall/gjson"
)

//
// parse unwraps Kraken's {"error": [...], "result": ...} envelope. A non-empty error list is
// returned as an *APIError.
//
func parse(body []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, fmt.Errorf("the Kraken endpoint returned a malformed body (%d bytes)", len(body))
	}

	envelope := gjson.ParseBytes(body)

	var errs []string
	envelope.Get("error").ForEach(func(_, v gjson.Result) bool {
		errs = append(errs, v.String())

		return true
	})

	if apiErr := newAPIError(errs); apiErr != nil {
		return gjson.Result{}, apiErr
	}

	return envelope.Get("result"), nil
}

//
// pairResult returns the first entry of a result keyed by pair identifier, skipping the "last"
// cursor that some endpoints append.
//
func pairResult(result gjson.Result) (string, gjson.Result) {
	var (
		key   string
		value gjson.Result
	)

	result.ForEach(func(k, v gjson.Result) bool {
		if k.String() == "last" {
			return true
		}

		key, value = k.String(), v

		return false
	})

	return key, value
}
