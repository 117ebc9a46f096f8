// Package services implements the business logic layer of the dashboard.
// Handlers and the export command call services; services call the
// dataprocessing, charts and infrastructure packages.
//
// # Available Services
//
//	- DashboardService: loads the source, builds the five chart data sets
//	  for a sector and renders them as SVG
//	- HealthService: liveness and data source readiness
//
// # Error Handling
//
// Loader errors keep their identity through wrapping, so callers can match
// dataprocessing.ErrNoRows and *dataprocessing.DataSourceError with
// errors.Is and errors.As. Invalid input is reported with ErrInvalidSector
// and ErrInvalidMetric.
//
// # Testing
//
// Services are tested against a mocked dataprocessing.Source:
//
//	src := &MockSource{}
//	src.On("Dataset", mock.Anything).Return(dataset, nil)
//	svc := NewDashboardService(src, DashboardConfig{Year: "2021"}, nil, logger)
package services
