// Package test holds cross-package tests that run the store, the HTTP auth
// server and the route guard together. It contains no production code.
package test
