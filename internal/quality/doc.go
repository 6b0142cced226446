// Package quality turns a set of provider ratings into a verdict: a single
// 0-10 score, a pass/fail decision against a threshold, a recommendation
// tier, and a list of red flags. Scoring is a renormalized weighted mean of
// whichever providers reported; red flags are derived independently and never
// feed back into the score.
package quality
