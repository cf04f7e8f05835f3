// Package spectrum turns a block's K forward-FFT outputs into a
// quantized Welch-method power spectrum.
//
// Welch's method calls for windowing each segment before the FFT; here
// the window is instead applied as a post-FFT frequency-domain
// convolution (c = X[k] - 0.5*(X[k-1]+X[k+1]), equivalent to a Hann
// window), so the forward FFT itself can run unwindowed and its output
// is reusable by the fast-convolution filter bank.
package spectrum
