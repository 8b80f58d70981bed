package data

import _ "embed"

//go:embed airports.json
var Airports []byte

//go:embed airline_policies.json
var AirlinePolicies []byte
