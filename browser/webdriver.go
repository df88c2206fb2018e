package browser

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/pkg/errors"
	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"
	"github.com/tebeka/selenium/firefox"

	"github.com/vcnkl/browserprobe/models"
)

type WebDriverLauncher struct{}

func NewWebDriverLauncher() *WebDriverLauncher {
	return &WebDriverLauncher{}
}

func (l *WebDriverLauncher) Launch(ctx context.Context, opts Options) (Session, error) {
	port, err := freePort()
	if err != nil {
		return nil, err
	}

	selenium.SetDebug(opts.Debug)

	var serviceOpts []selenium.ServiceOption
	if opts.LogOutput != nil {
		serviceOpts = append(serviceOpts, selenium.Output(opts.LogOutput))
	}

	var (
		newService func(string, int, ...selenium.ServiceOption) (*selenium.Service, error)
		caps       selenium.Capabilities
		urlPrefix  string
	)

	switch opts.Engine {
	case models.EngineFirefox:
		newService = selenium.NewGeckoDriverService
		caps = selenium.Capabilities{"browserName": "firefox"}
		caps.AddFirefox(firefox.Capabilities{
			Binary: opts.Binary,
			Args:   FirefoxArgs(opts),
		})
		urlPrefix = fmt.Sprintf("http://127.0.0.1:%d", port)
	case models.EngineChromium:
		newService = selenium.NewChromeDriverService
		caps = selenium.Capabilities{"browserName": "chrome"}
		caps.AddChrome(chrome.Capabilities{
			Path: opts.Binary,
			Args: ChromiumArgs(opts),
			W3C:  true,
		})
		urlPrefix = fmt.Sprintf("http://127.0.0.1:%d/wd/hub", port)
	default:
		return nil, fmt.Errorf("webdriver: unsupported engine %s", opts.Engine)
	}

	// the driver inherits the process environment, and the browser inherits
	// the driver's
	service, err := acquire(ctx, func() (*selenium.Service, error) {
		return withProcessEnv(opts.Env, func() (*selenium.Service, error) {
			return newService(opts.DriverPath, port, serviceOpts...)
		})
	}, func(s *selenium.Service) { _ = s.Stop() })
	if err != nil {
		return nil, errors.Wrapf(err, "failed to start %s", opts.DriverPath)
	}

	wd, err := acquire(ctx, func() (selenium.WebDriver, error) {
		return selenium.NewRemote(caps, urlPrefix)
	}, func(wd selenium.WebDriver) { _ = wd.Quit() })
	if err != nil {
		service.Stop()
		return nil, errors.Wrap(err, "failed to create webdriver session")
	}

	return &webDriverSession{wd: wd, service: service}, nil
}

type webDriverSession struct {
	wd      selenium.WebDriver
	service *selenium.Service
}

func (s *webDriverSession) Navigate(ctx context.Context, url string) error {
	_, err := await(ctx, func() (struct{}, error) {
		return struct{}{}, s.wd.Get(url)
	})
	return err
}

func (s *webDriverSession) Title(ctx context.Context) (string, error) {
	return await(ctx, s.wd.Title)
}

func (s *webDriverSession) Product() string {
	caps, err := s.wd.Capabilities()
	if err != nil {
		return ""
	}
	var parts []string
	for _, key := range []string{"browserName", "browserVersion"} {
		if v, ok := caps[key].(string); ok && v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}

func (s *webDriverSession) Close() error {
	quitErr := s.wd.Quit()
	stopErr := s.service.Stop()
	if quitErr != nil {
		return errors.Wrap(quitErr, "failed to quit webdriver session")
	}
	if stopErr != nil {
		return errors.Wrap(stopErr, "failed to stop driver service")
	}
	return nil
}

func freePort() (int, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, errors.Wrap(err, "failed to reserve a driver port")
	}
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port, nil
}
