// Package matching finds historical market scans similar to a job posting,
// scores how strongly they support a fresh analysis, blends their signal into
// that analysis, and writes completed scans back to the vector index.
//
// Embedding and index calls are the only blocking steps; every other function
// in the package is pure and request-scoped.
package matching
