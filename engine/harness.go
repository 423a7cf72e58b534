package engine

import (
	"fmt"

	"github.com/caffeineduck/jsru/interchange"
)

// storeResultFunc is the one native operation exposed to the guest: a
// callback that writes the serialized result into the context's slot,
// keyed by the generation token baked into the harness.
const storeResultFunc = "_jsru_store_result"

// reportSnippet serializes __result and hands it to the host together
// with the run's generation token. undefined is normalized to "null" so
// the host always reads a well-formed payload. Values JSON.stringify
// cannot encode (cyclic, symbols, functions) fall back to their string
// coercion.
const reportSnippet = `
	if (__result === undefined) {
		_jsru_store_result(__gen, "null");
	} else {
		var __json;
		try {
			__json = JSON.stringify(__result);
		} catch (__err) {
			__json = undefined;
		}
		if (__json === undefined) {
			__json = JSON.stringify(String(__result));
		}
		_jsru_store_result(__gen, __json);
	}`

const directHarness = `(function() {
	var __gen = %d;
	var __code = %s;
	var __result = eval(__code);` + reportSnippet + `
	return null;
})()`

const awaitHarness = `(async function() {
	var __gen = %d;
	var __code = %s;
	var __result = await Promise.resolve(eval(__code));` + reportSnippet + `
	return null;
})()`

// buildHarness wraps caller code in the reporting harness. The code is
// spliced in as a JSON string literal and recovered with eval, so quotes,
// newlines, and template syntax in the code cannot break out of the
// wrapper. In await mode the harness is an async IIFE that resolves the
// result before reporting; in direct mode a pending promise is serialized
// as-is. gen identifies the run: the slot discards reports from a
// harness built for an earlier run.
func buildHarness(code string, await bool, gen int64) (string, error) {
	lit, err := interchange.ToGuestText(code)
	if err != nil {
		return "", fmt.Errorf("encode code literal: %w", err)
	}
	if await {
		return fmt.Sprintf(awaitHarness, gen, lit), nil
	}
	return fmt.Sprintf(directHarness, gen, lit), nil
}
