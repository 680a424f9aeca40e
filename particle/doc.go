// Package particle models the decay tree: an arena of nodes addressed by
// index, each owning a contiguous slice of the global parameter vector.
//
// Node kinds are a closed tagged variant (Track, Photon, NeutralHadron,
// Composite, ExternalPrior). Kind-specific work is dispatched through a
// Table of Behavior function records, which callers may override per tree
// with WithBehavior.
//
// Layout per kind (parameters owned by the node, in order):
//
//	Track          px py pz                  (vertex is the mother's)
//	Photon         px py pz [E]              (E with EnergyInState)
//	NeutralHadron  px py pz
//	Composite      x y z [L] px py pz E      (L with a geometric constraint)
//	ExternalPrior  nothing                   (constrains the mother's vertex)
//
// Parameter slices are assigned in post-order, daughters before mothers.
// Units: cm, GeV, Tesla.
package particle
