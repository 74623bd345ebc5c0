package generator

// Station is a weather station and its long-run mean temperature.
type Station struct {
	Name string
	Mean float64
}

// DefaultStations is a fixed sample of stations with plausible means.
var DefaultStations = []Station{ //nolint:gochecknoglobals // read-only table
	{"Abha", 18.0},
	{"Accra", 26.4},
	{"Addis Ababa", 16.0},
	{"Alexandria", 20.0},
	{"Amsterdam", 10.2},
	{"Anchorage", 2.8},
	{"Athens", 19.2},
	{"Bangkok", 28.6},
	{"Berlin", 10.3},
	{"Bogotá", 13.4},
	{"Cairo", 21.4},
	{"Cape Town", 16.2},
	{"Chicago", 9.8},
	{"Dakar", 24.0},
	{"Dubai", 26.9},
	{"Dublin", 9.8},
	{"Hamburg", 9.7},
	{"Helsinki", 5.9},
	{"Hong Kong", 23.3},
	{"Istanbul", 13.9},
	{"Jakarta", 26.7},
	{"Kraków", 8.3},
	{"Lagos", 26.8},
	{"Lima", 19.1},
	{"London", 11.3},
	{"Madrid", 15.0},
	{"Mexico City", 17.5},
	{"Montreal", 6.8},
	{"Moscow", 5.8},
	{"Mumbai", 27.1},
	{"Nairobi", 17.8},
	{"Oslo", 5.7},
	{"Paris", 12.3},
	{"Reykjavík", 4.3},
	{"Rome", 15.2},
	{"São Paulo", 19.7},
	{"Singapore", 27.0},
	{"Stockholm", 6.6},
	{"Sydney", 17.7},
	{"Tokyo", 15.4},
	{"Toronto", 9.4},
	{"Ulaanbaatar", -0.4},
	{"Vienna", 10.4},
	{"Yakutsk", -8.8},
	{"Zürich", 9.3},
}
