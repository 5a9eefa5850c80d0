//go:build linux

package sensor

import "golang.org/x/sys/unix"

// DiskUsage reports the volume holding the configured path. Free counts
// blocks available to unprivileged users.
func (a *linuxAdapter) DiskUsage() DiskUsage {
	var st unix.Statfs_t
	if err := unix.Statfs(a.cfg.DiskPath, &st); err != nil {
		a.logger.Debug().Err(err).Str("path", a.cfg.DiskPath).Msg("statfs failed")
		return DiskUsage{}
	}

	bsize := int64(st.Bsize)
	return DiskUsage{
		Total: int64(st.Blocks) * bsize,
		Free:  int64(st.Bavail) * bsize,
	}
}
