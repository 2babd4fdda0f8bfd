/*
go-trafficcount counts road vehicles in a video stream from the per frame
detections of an object detector such as MobileNet-SSD.

Detections are filtered by per category confidence thresholds and an optional
counting region, then associated to tracks by greedy nearest centroid
matching within each category.  A track is counted once it has been seen for
a category's stability threshold and evicted after it has been missing for
longer than its disappeared threshold.

Counts are also accumulated over fixed length time windows.  When a window
closes its total is classified into a traffic state by both a Bayesian
lookup table conditioned on the hour of day and a Markov chain that smooths
changes between windows.  Closed windows are delivered to any registered
WindowListener, see the report package for sinks.

See example code and usage in the examples subdirectory.
*/
package trafficcount
