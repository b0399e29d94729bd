package models

// Driver is a driver who can be named on daily logs.
type Driver struct {
	ID            int64     `json:"id"`
	FirstName     string    `json:"firstName"`
	LastName      string    `json:"lastName"`
	FullName      string    `json:"fullName"`
	LicenseNumber string    `json:"licenseNumber"`
	Phone         string    `json:"phone"`
	Address       string    `json:"address"`
	CreatedAt     Timestamp `json:"createdAt"`
	UpdatedAt     Timestamp `json:"updatedAt"`
}

// DriverCreateRequest is the body of POST /v1/drivers.
type DriverCreateRequest struct {
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	LicenseNumber string `json:"licenseNumber"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
}

// DriverList is every driver by id.
type DriverList struct {
	Items []Driver `json:"items"`
}

// Truck is a power unit.
type Truck struct {
	ID           int64     `json:"id"`
	TruckNumber  string    `json:"truckNumber"`
	MakeModel    string    `json:"makeModel"`
	Year         int       `json:"year"`
	LicensePlate string    `json:"licensePlate"`
	CreatedAt    Timestamp `json:"createdAt"`
	UpdatedAt    Timestamp `json:"updatedAt"`
}

// TruckCreateRequest is the body of POST /v1/trucks.
type TruckCreateRequest struct {
	TruckNumber  string `json:"truckNumber"`
	MakeModel    string `json:"makeModel"`
	Year         int    `json:"year"`
	LicensePlate string `json:"licensePlate"`
}

// TruckList is every truck by id.
type TruckList struct {
	Items []Truck `json:"items"`
}

// Trailer is a trailer hauled under a daily log.
type Trailer struct {
	ID            int64     `json:"id"`
	TrailerNumber string    `json:"trailerNumber"`
	TrailerType   string    `json:"trailerType"`
	Capacity      string    `json:"capacity"`
	CreatedAt     Timestamp `json:"createdAt"`
	UpdatedAt     Timestamp `json:"updatedAt"`
}

// TrailerCreateRequest is the body of POST /v1/trailers.
type TrailerCreateRequest struct {
	TrailerNumber string `json:"trailerNumber"`
	TrailerType   string `json:"trailerType"`
	Capacity      string `json:"capacity"`
}

// TrailerList is every trailer by id.
type TrailerList struct {
	Items []Trailer `json:"items"`
}
