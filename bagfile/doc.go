// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package bagfile implements the ROS bag v2.0 container format: locating
// and validating the magic header, extracting the trailing index
// (connections + chunk-info records), and decoding chunk contents on
// demand against a cached, compiled message schema.
//
// A bagfile "file" is anything satisfying Source: a random-access byte
// range provider. Loading a Source with Inspect produces a BagMetadata
// describing every Connection and a time-sorted ChunkInfo index; a
// ChunkDecoder then turns individual ChunkInfo entries into decoded
// RosbagMessage slices, fetching, decompressing and caching chunk bytes
// as needed.
//
// bagfile supports exactly the "none" and "lz4" compression codecs, the
// only two a v2.0 bag file may legally use. It does not write bag files,
// read formats other than v2.0, or validate connection md5sums.
package bagfile
