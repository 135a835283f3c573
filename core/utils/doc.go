// Package utils provides common utility functions for the catalog-sync
// application. It includes helper functions for type conversion of loosely
// typed supplier payload values and other shared logic that doesn't fit into
// domain-specific packages.
package utils
