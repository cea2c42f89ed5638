// Package result defines the run history model and the Store interface
// implemented by the packages under result/store.
package result
