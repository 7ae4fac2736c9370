package git

import (
	gogit "github.com/go-git/go-git/v5"
)

// IsRepository reports whether dir holds a git working copy that go-git can open.
func IsRepository(dir string) bool {
	_, err := gogit.PlainOpen(dir)
	return err == nil
}
