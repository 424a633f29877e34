// Package serialization stores parameter tensors in the SafeTensors format.
//
//	Format Structure:
//	  [8 bytes: Header Size (uint64 LE)]
//	  [Header: JSON, tensor name -> {dtype, shape, data_offsets}]
//	  [Tensor data: raw little-endian bytes]
//
// Only F64 tensors are written and read, matching the engine's tensor type. The
// optional "__metadata__" header entry carries string key/value pairs.
//
// Example usage:
//
//	// Save
//	err := serialization.WriteSafeTensors(w, map[string]*tensor.Tensor{"0.W": w0}, nil)
//
//	// Load
//	tensors, metadata, err := serialization.ReadSafeTensors(r)
package serialization
