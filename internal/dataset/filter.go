package dataset

// Filter returns the records of city whose timestamp date lies in [start, end].
// The input is not modified. start after end yields an empty dataset.
func Filter(ds Dataset, city string, start, end Date) Dataset {
	out := Dataset{Records: []Record{}}
	if start.After(end) {
		return out
	}
	city = NormalizeCity(city)
	for _, r := range ds.Records {
		if r.City != city {
			continue
		}
		d := DateOf(r.Timestamp)
		if d.Before(start) || d.After(end) {
			continue
		}
		out.Records = append(out.Records, r)
	}
	return out
}
