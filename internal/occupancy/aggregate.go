package occupancy

import "time"

// Summary is the fleet-level view of a resource set at one instant.
// Counts holds how many resources resolved to each status; Capacity holds
// the summed seat/bed capacity per status. OccupancyRate excludes
// unavailable resources from its denominator so an inactive unit does not
// depress the rate.
type Summary struct {
	Counts        map[Status]int `json:"counts"`
	Capacity      map[Status]int `json:"capacity"`
	TotalCapacity int            `json:"total_capacity"`
	OccupancyRate float64        `json:"occupancy_rate"`
	Conflicts     int            `json:"conflicts"`
}

// Summarize resolves every resource once and folds the results into a
// Summary. Each resource is counted exactly once and the totals are
// independent of input order.
func Summarize(resources []Resource, at time.Time, snap *Snapshot, r *Resolver) Summary {
	sum := Summary{
		Counts:   make(map[Status]int),
		Capacity: make(map[Status]int),
	}

	for _, res := range resources {
		result := r.Resolve(res, at, snap)
		sum.Counts[result.Status]++
		sum.Capacity[result.Status] += res.Capacity
		sum.TotalCapacity += res.Capacity
		if result.Conflict {
			sum.Conflicts++
		}
	}

	considered := len(resources) - sum.Counts[StatusUnavailable]
	if considered > 0 {
		taken := sum.Counts[StatusReserved] + sum.Counts[StatusOccupied]
		sum.OccupancyRate = float64(taken) / float64(considered)
	}
	return sum
}

// SummarizeByZone partitions the resource set by zone tag and summarizes
// each partition. A thin grouping over Summarize, kept out of the resolver
// itself.
func SummarizeByZone(resources []Resource, at time.Time, snap *Snapshot, r *Resolver) map[string]Summary {
	byZone := make(map[string][]Resource)
	for _, res := range resources {
		byZone[res.Zone] = append(byZone[res.Zone], res)
	}

	out := make(map[string]Summary, len(byZone))
	for zone, group := range byZone {
		out[zone] = Summarize(group, at, snap, r)
	}
	return out
}
