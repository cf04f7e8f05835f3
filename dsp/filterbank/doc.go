// Package filterbank implements the fast-convolution channelizer: each
// registered filter extracts a contiguous bin range from the shared
// forward-FFT output, applies a raised-cosine weighting to suppress
// the rectangular window's sidelobes, runs one inverse FFT, and keeps
// the central portion of the result to discard the 25%-overlap
// transient at each edge.
//
// A filter's IFFT size B only needs to be a multiple of 4, the
// guarantee BinMapping already provides. The edge trim keeps
// [B/8, 7B/8) with integer division: for B a multiple of 8 that is
// exactly the central 75%, and for B divisible by 4 but not 8 it still
// keeps 3B/4 samples (e.g. [1, 10) for B=12), so every block yields
// K*(3B/4) output samples rather than rejecting the request outright.
package filterbank
