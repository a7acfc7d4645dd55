package seed

// File is the root of a seed YAML document.
//
//	listings:
//	  - title: Cozy Beachfront Cottage
//	    price: 1500
//	    location: Malibu
//	    country: United States
type File struct {
	Listings []Entry `yaml:"listings"`
}

// Entry is one listing in the seed file.
type Entry struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Image       string   `yaml:"image"`
	Price       *float64 `yaml:"price"`
	Location    string   `yaml:"location"`
	Country     string   `yaml:"country"`
}
