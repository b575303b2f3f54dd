// Package domain models river conditions on the Thames around Wargrave and
// Shiplake: stream warning boards, flow, water temperature, storm overflow
// discharges and the local forecast.
//
// # Stream Warning Boards
//
// Boards at each lock show the stream strength for the reach downstream of
// it. The Environment Agency publishes them as prose on a guidance page, one
// reach per line:
//
//	"Shiplake Lock to Marsh Lock Caution stream increasing"
//
// There is no machine-readable structure, so [HTMLToLines] recovers lines
// from the page layout and [ParseReachLine] matches the reach pattern. The
// visitor moorings page repeats the boards as an <h3> per reach followed by
// a paragraph of status text; see [ParseMoorings].
//
// Board text is classified by [Classify], first match wins:
//
//	red:    "red", "strong stream"
//	yellow: "stream increasing", "stream decreasing" (with trend), "caution"
//	green:  "no stream warnings", anything else
//
// "red" is a plain substring test, so any word containing it counts. This
// matches how the boards were read by the dashboard from the start.
//
// # Other Sources
//
// Flow readings come from the flood-monitoring API ([ParseFlowReadings]),
// temperatures from a CSV telemetry feed ([ParseTelemetryCSV]), discharge
// status from the water company's open data API ([ParseDischargeStatus]) and
// forecasts from a GeoJSON site-specific API ([ParseForecast]). Field names
// in the latter two drift between API versions and are resolved through
// ordered key lists with [FirstPresent] and friends.
package domain
