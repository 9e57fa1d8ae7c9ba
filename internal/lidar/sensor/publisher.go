package sensor

import "github.com/banshee-data/livox.sim/internal/lidar/codec"

// Publisher receives the records a sensor emits. Implementations must not
// retain the records past the call unless they copy them.
type Publisher interface {
	PublishPointCloud(topic string, pc *codec.PointCloud2)
	PublishLaserScan(ls *codec.LaserScanStamped)
	PublishTransform(tf *codec.TransformStamped)
}

// Publishers fans records out to every publisher in order.
type Publishers []Publisher

func (ps Publishers) PublishPointCloud(topic string, pc *codec.PointCloud2) {
	for _, p := range ps {
		p.PublishPointCloud(topic, pc)
	}
}

func (ps Publishers) PublishLaserScan(ls *codec.LaserScanStamped) {
	for _, p := range ps {
		p.PublishLaserScan(ls)
	}
}

func (ps Publishers) PublishTransform(tf *codec.TransformStamped) {
	for _, p := range ps {
		p.PublishTransform(tf)
	}
}
