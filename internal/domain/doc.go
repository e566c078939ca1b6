// Package domain defines the core relay types and contracts.
//
// Messages are opaque JSON documents; subscribers are anything that can take a frame
// without blocking. No implementation code beyond envelope encoding.
package domain
