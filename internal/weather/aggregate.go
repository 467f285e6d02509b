package weather

// MergeReadings combines provider readings, which must be ordered by provider
// priority, into a single Snapshot. Current conditions come from the first
// reading that resolved the city; an empty forecast is filled from the next
// resolved reading that has one.
func MergeReadings(readings []Reading) (Snapshot, bool) {
	var (
		merged Snapshot
		found  bool
	)

	for _, r := range readings {
		if !r.Snapshot.Found() {
			continue
		}
		if !found {
			merged = r.Snapshot
			found = true
			continue
		}
		if len(merged.Forecast) == 0 && len(r.Snapshot.Forecast) > 0 {
			merged.Forecast = r.Snapshot.Forecast
		}
	}

	return merged, found
}
