// Package catalog holds the per-domain extraction instructions sent ahead of
// the operator's pasted text. Prompts are fixed strings: same domain, same
// prompt, no templating.
package catalog

import "github.com/zaikan-ops/zaikan/internal/record"

// Prompt returns the instruction block for a domain.
func Prompt(d record.Domain) string {
	switch d {
	case record.DomainTask:
		return taskPrompt
	case record.DomainSchedule:
		return schedulePrompt
	case record.DomainSKU:
		return skuPrompt
	}
	return ""
}

const schedulePrompt = `Parse the following text and extract inventory shipment schedule information. For each line, extract into JSON with these fields:
- orderNo (order number)
- product (product name)
- brand (BrandA, BrandB, or Other)
- quantity (number of units)
- channel (Online, Offline, Sample, or Fixture)
- shipDate (ship date) - format as YYYY-MM-DD
- eta (estimated arrival) - format as YYYY-MM-DD
- warehouseDate (warehouse intake date) - format as YYYY-MM-DD

Return a JSON array. If a field is not found, use empty string.`

const skuPrompt = `Parse the following text and extract SKU information. For each line, extract into JSON with these fields:
- orderNo (order number)
- skuCode (SKU code)
- product (product name)
- brand (BrandA, BrandB, or Other)
- color (color variant)
- quantity (number of units)
- channel (Online, Offline, Sample, or Fixture)

Return a JSON array. If a field is not found, use empty string.`

const taskPrompt = `Parse the following text and extract task information. Analyze each item and categorize it as either a "task" (actionable work to be executed) or a "guide" (procedures, detailed explanations, points of caution).

For each item, extract into JSON with these fields:
- category ("task" for actionable work, "guide" for instructions/explanations)
- title (name of the task or guide)
- type (Photography, Listing, Stocktake, Packing, Shipping, Claim, or Other)
- priority (urgent, high, medium, low) - tasks only
- status (todo, in_progress, done) - tasks only
- deadline - format as YYYY-MM-DD, tasks only
- assignee (person name) - tasks only
- notes (detailed steps, explanations, cautions)

Categorization rules:
- Work procedures, how-to instructions, detailed explanations, points of caution → category: "guide"
- Concrete work items with a deadline or an assignee → category: "task"
- For guide items, put the detailed content in the notes field

Return a JSON array. If a field is not found, use an appropriate default value.`
