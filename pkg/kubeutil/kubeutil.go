package kubeutil

import (
	"os"
	"path/filepath"

	xe "github.com/protocaas/protocaas/pkg/errors"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/homedir"
)

// FindKubeconfig returns the kubeconfig file to be used.
//
// It searches, in order of priority,
//
// - the file found first from candidates
//
// - environmental variable `KUBECONFIG`
//
// - `~/.kube/config`
//
// Returns empty string when nothing is found.
func FindKubeconfig(candidates ...string) string {
	for _, c := range candidates {
		if isFile(c) {
			return c
		}
	}
	if k := os.Getenv("KUBECONFIG"); isFile(k) {
		return k
	}
	if home := homedir.HomeDir(); home != "" {
		if k := filepath.Join(home, ".kube", "config"); isFile(k) {
			return k
		}
	}
	return ""
}

func isFile(p string) bool {
	if p == "" {
		return false
	}
	s, err := os.Stat(p)
	return err == nil && !s.IsDir()
}

// Config builds *rest.Config from kubeconfig found by FindKubeconfig.
//
// When no kubeconfig is found, in-cluster config is used.
func Config(candidates ...string) (*rest.Config, error) {
	kubeconfig := FindKubeconfig(candidates...)
	if kubeconfig == "" {
		conf, err := rest.InClusterConfig()
		if err != nil {
			return nil, xe.Wrap(err)
		}
		return conf, nil
	}
	conf, err := clientcmd.BuildConfigFromFlags("", kubeconfig)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	return conf, nil
}

// ConnectToK8s creates a clientset with Config.
func ConnectToK8s(candidates ...string) (kubernetes.Interface, error) {
	conf, err := Config(candidates...)
	if err != nil {
		return nil, err
	}
	clientset, err := kubernetes.NewForConfig(conf)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	return clientset, nil
}
