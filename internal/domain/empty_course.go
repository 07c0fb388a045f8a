package domain

import "sort"

// EmptyCourse is one row of the empty course report.
type EmptyCourse struct {
	ID                   int    `json:"id"`
	Category             string `json:"category"` // Name of the direct parent category
	URL                  string `json:"url"`
	FullName             string `json:"fullname"`
	ShortName            string `json:"shortname"`
	CategoryID           int    `json:"category_id"`
	LatestTimestamp      int64  `json:"latest_timestamp"`
	LatestTimestampHuman string `json:"latest_timestamp_human"`
}

// Buckets groups empty courses by top-level category name.
// Names are kept in order of first appearance.
type Buckets struct {
	names   []string
	courses map[string][]EmptyCourse
}

func NewBuckets() *Buckets {
	return &Buckets{
		names:   make([]string, 0),
		courses: make(map[string][]EmptyCourse),
	}
}

// Add appends course to the bucket of name, creating the bucket on first use.
func (b *Buckets) Add(name string, course EmptyCourse) {
	if _, ok := b.courses[name]; !ok {
		b.names = append(b.names, name)
	}
	b.courses[name] = append(b.courses[name], course)
}

func (b *Buckets) Get(name string) []EmptyCourse {
	return b.courses[name]
}

// Names returns bucket names in order of first appearance.
func (b *Buckets) Names() []string {
	out := make([]string, len(b.names))
	copy(out, b.names)
	return out
}

// Len is the number of buckets.
func (b *Buckets) Len() int {
	return len(b.names)
}

// Total is the number of courses over all buckets.
func (b *Buckets) Total() int {
	total := 0
	for _, courses := range b.courses {
		total += len(courses)
	}
	return total
}

// Sort orders every bucket oldest first. Equal timestamps keep insertion order.
func (b *Buckets) Sort() {
	for _, courses := range b.courses {
		sort.SliceStable(courses, func(i, j int) bool {
			return courses[i].LatestTimestamp < courses[j].LatestTimestamp
		})
	}
}
