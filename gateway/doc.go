// Package gateway is the GraphQL client for the launches API. It sends the five
// operations the application needs and turns failures into *domain.Error values.
package gateway
