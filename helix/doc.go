// Package helix describes charged-particle trajectories in a uniform magnetic
// field along z.
//
// Parameters are the perigee set with respect to the origin:
//
//	d0        signed transverse impact parameter; perigee = (d0·sinφ0, −d0·cosφ0, z0)
//	φ0        azimuth of the momentum at the perigee
//	ω         signed curvature κ·q/pT with κ = 0.00299792458·Bz [1/cm]
//	z0        longitudinal position of the perigee
//	tanλ      pz/pT
//
// The package converts a (vertex, momentum) pair into these parameters,
// propagates a helix to the point of closest approach to an arbitrary point,
// and seeds a common vertex for a pair of helices. Units: cm, GeV, Tesla.
package helix
