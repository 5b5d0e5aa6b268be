package driver

import (
	"encoding/json"
	"fmt"

	"bitcat/internal/diag"
	"bitcat/internal/observ"
	"bitcat/internal/source"
)

type timingPayload struct {
	Path string `json:"path,omitempty"`
	observ.Report
}

// appendTimingDiagnostic records the timings as an info diagnostic whose note
// holds the JSON report. It bypasses the bag limit.
func appendTimingDiagnostic(bag *diag.Bag, payload timingPayload) {
	if bag == nil {
		return
	}
	msg := fmt.Sprintf("timings: total %.3f ms", payload.TotalMS)
	if payload.Path != "" {
		msg = fmt.Sprintf("%s for %s", msg, payload.Path)
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	entry := diag.New(diag.SevInfo, diag.ObsTimings, source.Span{}, msg).
		WithNote(source.Span{}, string(data))

	if bag.Len() < int(bag.Cap()) {
		bag.Add(entry)
		return
	}
	overflow := diag.NewBag(1)
	overflow.Add(entry)
	bag.Merge(overflow)
}
