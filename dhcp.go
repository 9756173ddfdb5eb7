package main

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/apex/log"
	"github.com/pkg/errors"
)

// dhcpStopTimeout bounds the wait for udhcpd to exit after SIGTERM.
const dhcpStopTimeout = 5 * time.Second

const dhcpConfigTemplate = `start %s
end %s
interface %s
lease_file %s
pid_file %s
`

// DHCPServer manages an ephemeral udhcpd process serving a cloud segment.
// Construction creates the three backing files (config, leases, pid); Stop
// releases them unconditionally.
type DHCPServer struct {
	namespace string
	cmd       *exec.Cmd

	config string
	leases string
	pid    string
}

// NewDHCPServer writes the udhcpd configuration for the given lease range
// and interface, to be served inside the namespace.
func NewDHCPServer(start, end, iface, namespace string) (*DHCPServer, error) {
	s := &DHCPServer{namespace: namespace}

	for _, f := range []struct {
		prefix string
		dest   *string
	}{
		{"udhcpd-conf-", &s.config},
		{"udhcpd-leases-", &s.leases},
		{"udhcpd-pid-", &s.pid},
	} {
		path, err := tempFile(f.prefix)
		if err != nil {
			s.removeFiles()
			return nil, err
		}
		*f.dest = path
	}

	conf := fmt.Sprintf(dhcpConfigTemplate, start, end, iface, s.leases, s.pid)
	if err := os.WriteFile(s.config, []byte(conf), 0644); err != nil {
		s.removeFiles()
		return nil, errors.Wrap(err, "failed to write udhcpd config")
	}
	return s, nil
}

func tempFile(prefix string) (string, error) {
	f, err := os.CreateTemp("", prefix)
	if err != nil {
		return "", errors.Wrap(err, "failed to create temporary file")
	}
	defer f.Close()
	return f.Name(), nil
}

// Start launches udhcpd in the foreground inside the namespace. A failed
// launch is surfaced to the caller; the backing files stay in place until
// Stop.
func (s *DHCPServer) Start() error {
	if s.cmd != nil {
		return errors.New("dhcp server already started")
	}

	cmd := exec.Command("ip", "netns", "exec", s.namespace, "udhcpd", "-f", s.config)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return errors.Wrapf(err, "failed to start udhcpd in %s", s.namespace)
	}
	s.cmd = cmd

	log.WithField("namespace", s.namespace).Info("dhcp server started")
	return nil
}

// Stop terminates the process, bounded by dhcpStopTimeout, and removes the
// backing files even when termination times out.
func (s *DHCPServer) Stop() error {
	defer s.removeFiles()

	if s.cmd == nil {
		return nil
	}
	cmd := s.cmd
	s.cmd = nil

	if err := cmd.Process.Signal(syscall.SIGTERM); err != nil {
		cmd.Process.Kill()
		return errors.Wrap(err, "failed to signal udhcpd")
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case <-done:
		log.WithField("namespace", s.namespace).Info("dhcp server stopped")
		return nil
	case <-time.After(dhcpStopTimeout):
		cmd.Process.Kill()
		<-done
		return errors.New("udhcpd did not exit before timeout")
	}
}

func (s *DHCPServer) removeFiles() {
	for _, path := range []string{s.config, s.leases, s.pid} {
		if path != "" {
			os.Remove(path)
		}
	}
}

// poolHostRange returns the lease range for the pool's first block: the
// second through last host addresses. The first host address belongs to the
// cloud segment's own device.
func poolHostRange(pool *Pool) (string, string, error) {
	alloc, err := NewSubnetAllocator(pool.Network, pool.PrefixIncrement)
	if err != nil {
		return "", "", err
	}
	block, err := alloc.Next()
	if err != nil {
		return "", "", err
	}
	first, last := hostRange(block)
	return first.Next().String(), last.String(), nil
}
