// Package solid builds the mesh descriptors that make up each named part of
// a sphere (full sphere, zone, layer, segment, sector and the separable
// layer). Builds are pure: the same parameters always produce the same
// Decomposition, and nothing is shared between calls.
//
// The polar axis is +Y. Polar angles (phi) are measured from the north pole,
// so phi = 0 is the top of the sphere and phi = Pi the bottom.
package solid
