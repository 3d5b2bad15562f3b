package ai

import (
	"fmt"
	"sort"

	"rfpflow/internal/apperr"
)

// Task output validation. A syntactically valid JSON object is not enough:
// each task has required top-level keys, scores must stay on the 0-10 scale,
// and comparison rankings must be a permutation over the compared vendors.

func validateRequirementsDoc(doc map[string]any) error {
	return requireKeys("generate_requirements", doc, "items", "budget", "timeline", "terms")
}

func validateProposalDoc(doc map[string]any) error {
	return requireKeys("parse_proposal", doc, "pricing", "timeline", "terms")
}

func validateScoresDoc(doc map[string]any) error {
	components := []string{"price_score", "timeline_score", "terms_score"}
	sum := 0.0
	for _, key := range components {
		v, ok := doc[key]
		if !ok {
			return apperr.AIMalformed(fmt.Sprintf("score_proposal output missing %q", key), nil)
		}
		f, ok := v.(float64)
		if !ok || f < 0 || f > 10 {
			return apperr.AIMalformed(fmt.Sprintf("score_proposal %q is not a score between 0 and 10", key), nil)
		}
		sum += f
	}

	overall, ok := doc["overall_score"].(float64)
	if !ok || overall == 0 {
		doc["overall_score"] = sum / float64(len(components))
	} else if overall < 0 || overall > 10 {
		return apperr.AIMalformed("score_proposal overall_score is not between 0 and 10", nil)
	}

	if _, ok := doc["analysis"]; !ok {
		doc["analysis"] = ""
	}
	return nil
}

func validateComparison(cmp *Comparison, vendorIDs []int) error {
	if cmp.Summary == "" {
		return apperr.AIMalformed("compare_proposals output missing summary", nil)
	}
	if len(cmp.Rankings) != len(vendorIDs) {
		return apperr.AIMalformed(
			fmt.Sprintf("compare_proposals returned %d rankings for %d proposals", len(cmp.Rankings), len(vendorIDs)),
			nil,
		)
	}

	expected := make(map[int]bool, len(vendorIDs))
	for _, id := range vendorIDs {
		expected[id] = true
	}

	ranks := make([]int, 0, len(cmp.Rankings))
	seenVendor := make(map[int]bool, len(cmp.Rankings))
	for _, r := range cmp.Rankings {
		if !expected[r.VendorID] || seenVendor[r.VendorID] {
			return apperr.AIMalformed(
				fmt.Sprintf("compare_proposals ranking references vendor %d outside the compared set", r.VendorID),
				nil,
			)
		}
		seenVendor[r.VendorID] = true
		ranks = append(ranks, r.Rank)
	}

	sort.Ints(ranks)
	for i, rank := range ranks {
		if rank != i+1 {
			return apperr.AIMalformed("compare_proposals ranks are not a permutation of 1..N", nil)
		}
	}

	if cmp.Recommendation != nil && !expected[cmp.Recommendation.VendorID] {
		return apperr.AIMalformed(
			fmt.Sprintf("compare_proposals recommends vendor %d outside the compared set", cmp.Recommendation.VendorID),
			nil,
		)
	}
	return nil
}

func requireKeys(task string, doc map[string]any, keys ...string) error {
	for _, key := range keys {
		if _, ok := doc[key]; !ok {
			return apperr.AIMalformed(fmt.Sprintf("%s output missing %q", task, key), nil)
		}
	}
	return nil
}
