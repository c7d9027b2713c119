// Package service loads upstream records and runs the analytics over them.
package service

import (
	"github.com/smartcity/traffic-analytics/internal/domain"
)

// DataRepository is re-exported from domain for convenience
type DataRepository = domain.DataRepository
