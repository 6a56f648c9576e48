// Package services classifies ports into well-known service labels with a
// risk level. Pure lookup over a static table: deterministic, total, no I/O.
package services

import (
	"strings"

	"github.com/Brutus1066/portr/pkg/model"
)

// Risk grades how dangerous killing the service is.
type Risk int

const (
	RiskLow Risk = iota
	RiskMedium
	RiskHigh
	RiskCritical
)

func (r Risk) Label() string {
	switch r {
	case RiskLow:
		return "Low Risk"
	case RiskMedium:
		return "Medium Risk"
	case RiskHigh:
		return "High Risk"
	case RiskCritical:
		return "CRITICAL"
	}
	return "Unknown"
}

// Service is one row of the known-service table.
type Service struct {
	Port        int
	Name        string
	Description string
	Risk        Risk
	// ProcessHints are executable names commonly serving this port, used as a
	// secondary match when classifying by name.
	ProcessHints []string
}

var knownServices = []Service{
	// Web servers
	{80, "HTTP", "Web server (Apache, Nginx, IIS)", RiskMedium, []string{"nginx", "apache", "httpd", "iis"}},
	{443, "HTTPS", "Secure web server", RiskMedium, []string{"nginx", "apache", "httpd", "iis"}},
	{8080, "HTTP Alt", "Alternative HTTP / Development server", RiskLow, []string{"java", "node", "python"}},
	{8443, "HTTPS Alt", "Alternative HTTPS", RiskLow, []string{"java", "node"}},
	// Databases
	{3306, "MySQL", "MySQL/MariaDB database server", RiskCritical, []string{"mysqld", "mariadbd", "mysql"}},
	{5432, "PostgreSQL", "PostgreSQL database server", RiskCritical, []string{"postgres", "postgresql"}},
	{27017, "MongoDB", "MongoDB database server", RiskCritical, []string{"mongod", "mongodb"}},
	{6379, "Redis", "Redis in-memory data store", RiskHigh, []string{"redis-server", "redis"}},
	{9200, "Elasticsearch", "Elasticsearch search engine", RiskHigh, []string{"elasticsearch", "java"}},
	{1433, "MSSQL", "Microsoft SQL Server", RiskCritical, []string{"sqlservr", "mssql"}},
	{1521, "Oracle", "Oracle Database", RiskCritical, []string{"oracle", "tnslsnr"}},
	{5984, "CouchDB", "Apache CouchDB", RiskHigh, []string{"couchdb", "beam"}},
	{7474, "Neo4j", "Neo4j Graph Database", RiskHigh, []string{"neo4j", "java"}},
	// Message queues
	{5672, "RabbitMQ", "RabbitMQ message broker", RiskHigh, []string{"rabbitmq", "beam", "erlang"}},
	{9092, "Kafka", "Apache Kafka message broker", RiskHigh, []string{"kafka", "java"}},
	{4222, "NATS", "NATS message broker", RiskMedium, []string{"nats-server", "nats"}},
	// Development tools
	{3000, "Dev Server", "Node.js / React / Rails dev server", RiskLow, []string{"node", "ruby", "rails"}},
	{4200, "Angular", "Angular development server", RiskLow, []string{"node", "ng"}},
	{5000, "Flask/ASP.NET", "Flask or ASP.NET development server", RiskLow, []string{"python", "flask", "dotnet"}},
	{5173, "Vite", "Vite development server", RiskLow, []string{"node", "vite"}},
	{8000, "Django/PHP", "Django or PHP development server", RiskLow, []string{"python", "django", "php"}},
	{9000, "PHP-FPM", "PHP FastCGI Process Manager", RiskMedium, []string{"php-fpm", "php"}},
	// Container & orchestration
	{2375, "Docker", "Docker daemon (unencrypted)", RiskCritical, []string{"dockerd", "docker"}},
	{2376, "Docker TLS", "Docker daemon (TLS)", RiskCritical, []string{"dockerd", "docker"}},
	{6443, "Kubernetes", "Kubernetes API server", RiskCritical, []string{"kube-apiserver", "k8s"}},
	{10250, "Kubelet", "Kubernetes Kubelet", RiskCritical, []string{"kubelet"}},
	// System services
	{22, "SSH", "Secure Shell server", RiskCritical, []string{"sshd", "ssh"}},
	{21, "FTP", "FTP server", RiskMedium, []string{"vsftpd", "proftpd", "ftpd"}},
	{23, "Telnet", "Telnet server (insecure)", RiskMedium, []string{"telnetd"}},
	{25, "SMTP", "Email server (SMTP)", RiskHigh, []string{"postfix", "sendmail", "exim"}},
	{53, "DNS", "Domain Name System", RiskCritical, []string{"named", "bind", "dnsmasq"}},
	{67, "DHCP", "DHCP server", RiskCritical, []string{"dhcpd", "dnsmasq"}},
	{123, "NTP", "Network Time Protocol", RiskHigh, []string{"ntpd", "chronyd"}},
	{135, "RPC", "Windows RPC Endpoint Mapper", RiskCritical, []string{"svchost"}},
	{139, "NetBIOS", "Windows NetBIOS Session", RiskHigh, []string{"smbd", "svchost"}},
	{445, "SMB", "Windows File Sharing (SMB)", RiskCritical, []string{"smbd", "svchost", "System"}},
	{3389, "RDP", "Windows Remote Desktop", RiskCritical, []string{"svchost", "TermService"}},
	// Monitoring & observability
	{9090, "Prometheus", "Prometheus monitoring", RiskMedium, []string{"prometheus"}},
	{3100, "Loki", "Grafana Loki log aggregation", RiskMedium, []string{"loki"}},
	{3001, "Grafana", "Grafana dashboard (alt port)", RiskMedium, []string{"grafana"}},
	{9093, "Alertmanager", "Prometheus Alertmanager", RiskMedium, []string{"alertmanager"}},
	{16686, "Jaeger", "Jaeger tracing UI", RiskLow, []string{"jaeger"}},
	// AI/ML
	{11434, "Ollama", "Ollama LLM server", RiskLow, []string{"ollama"}},
	{1234, "LM Studio", "LM Studio local LLM", RiskLow, []string{"lm studio", "lmstudio"}},
	{8888, "Jupyter", "Jupyter Notebook server", RiskLow, []string{"jupyter", "python"}},
	// Caching
	{11211, "Memcached", "Memcached cache server", RiskHigh, []string{"memcached"}},
	// Version control
	{9418, "Git", "Git protocol daemon", RiskMedium, []string{"git-daemon"}},
	// Proxy
	{1080, "SOCKS", "SOCKS proxy", RiskMedium, []string{"socks", "dante"}},
}

// criticalImages are container images whose stop deserves the typed
// confirmation barrier regardless of the published port.
var criticalImages = []string{
	"postgres", "mysql", "mariadb", "mongo", "redis",
	"elasticsearch", "rabbitmq", "kafka", "zookeeper",
	"consul", "vault", "etcd", "minio",
}

// Lookup returns the known service for a port, or nil.
func Lookup(port int) *Service {
	for i := range knownServices {
		if knownServices[i].Port == port {
			return &knownServices[i]
		}
	}
	return nil
}

// Classify labels a socket for a snapshot entry. Port match wins; when the
// port is unknown, a process-name hint match from any table row gives a
// weaker, non-critical label. Unknown ports return nil.
func Classify(port int, procName string) *model.ServiceLabel {
	if svc := Lookup(port); svc != nil {
		return &model.ServiceLabel{
			Name:        svc.Name,
			Description: svc.Description,
			Critical:    svc.Risk >= RiskHigh,
		}
	}
	if procName == "" {
		return nil
	}
	lower := strings.ToLower(procName)
	for i := range knownServices {
		for _, hint := range knownServices[i].ProcessHints {
			if lower == hint {
				return &model.ServiceLabel{
					Name:        knownServices[i].Name,
					Description: knownServices[i].Description,
					Critical:    false,
				}
			}
		}
	}
	return nil
}

// ShortName returns the service name for a port, or "".
func ShortName(port int) string {
	if svc := Lookup(port); svc != nil {
		return svc.Name
	}
	return ""
}

// IsCriticalImage reports whether a container image is a well-known data
// store or infrastructure service.
func IsCriticalImage(image string) bool {
	lower := strings.ToLower(image)
	for _, c := range criticalImages {
		if strings.Contains(lower, c) {
			return true
		}
	}
	return false
}
