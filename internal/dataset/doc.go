// Package dataset loads tabular review data: CSV uploads and the built-in sample.
package dataset
