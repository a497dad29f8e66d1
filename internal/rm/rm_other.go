//go:build !windows

package rm

type systemAPI struct{}

func (systemAPI) StartSession() (Handle, string, error) {
	return 0, "", ErrUnsupported
}

func (systemAPI) RegisterFiles(Handle, []string) error {
	return ErrUnsupported
}

func (systemAPI) GetList(Handle, int) (List, error) {
	return List{}, ErrUnsupported
}

func (systemAPI) EndSession(Handle) error {
	return nil
}

func statusMessage(s Status) string {
	return fallbackMessage(s)
}
