//go:build unix

package extract

import (
	"os"
	"syscall"
)

// openRegular creates the destination file with its final mode set at open
// time, in a single syscall. O_NOFOLLOW refuses to write through a symlink
// that appeared at the destination between validation and creation.
func openRegular(path string, mode uint32) (*os.File, error) {
	return os.OpenFile(path,
		os.O_WRONLY|os.O_CREATE|os.O_TRUNC|syscall.O_NOFOLLOW,
		os.FileMode(mode&0o777))
}

func createSymlink(target, link string) error {
	if err := os.Symlink(target, link); err != nil {
		if !os.IsExist(err) {
			return err
		}
		if err := os.Remove(link); err != nil {
			return err
		}
		return os.Symlink(target, link)
	}
	return nil
}

func createHardlink(source, link string) error {
	if err := os.Link(source, link); err != nil {
		if !os.IsExist(err) {
			return err
		}
		if err := os.Remove(link); err != nil {
			return err
		}
		return os.Link(source, link)
	}
	return nil
}
