package domain

import (
	"encoding/json"
	"fmt"
)

// DischargeStatus is the current storm-overflow state at a monitored site.
type DischargeStatus struct {
	Site       string `json:"site"`
	Status     string `json:"status"`
	AlertStart string `json:"alertStart,omitempty"`
	AlertStop  string `json:"alertStop,omitempty"`
	// Active is true while a discharge has started and not yet stopped.
	Active bool `json:"active"`
}

// Field spellings seen across versions of the discharge API.
var (
	dischargeEnvelopeKeys = []string{"items", "Items"}
	dischargeStatusKeys   = []string{"AlertStatus", "alertStatus", "status"}
	dischargeStartKeys    = []string{"MostRecentDischargeAlertStart", "startTime", "LastStart", "lastStart"}
	dischargeStopKeys     = []string{"MostRecentDischargeAlertStop", "stopTime", "LastStop", "lastStop"}
)

// ParseDischargeStatus normalizes a discharge status response. The payload
// may be {"items": [...]} (or "Items"), a bare array or a single object; the
// first item wins.
func ParseDischargeStatus(site string, body []byte) (DischargeStatus, error) {
	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return DischargeStatus{}, fmt.Errorf("decode discharge status: %w", err)
	}

	item := firstItem(payload)
	if item == nil {
		return DischargeStatus{Site: site, Status: "unknown"}, nil
	}

	out := DischargeStatus{
		Site:       site,
		Status:     FirstString(item, dischargeStatusKeys...),
		AlertStart: FirstString(item, dischargeStartKeys...),
		AlertStop:  FirstString(item, dischargeStopKeys...),
	}
	if out.Status == "" {
		out.Status = "unknown"
	}
	out.Active = out.AlertStart != "" && out.AlertStop == ""
	return out, nil
}

func firstItem(payload any) map[string]any {
	switch v := payload.(type) {
	case map[string]any:
		if items, ok := FirstPresent(v, dischargeEnvelopeKeys...); ok {
			if list, ok := items.([]any); ok {
				return firstItem(list)
			}
		}
		return v
	case []any:
		if len(v) == 0 {
			return nil
		}
		m, _ := v[0].(map[string]any)
		return m
	}
	return nil
}
