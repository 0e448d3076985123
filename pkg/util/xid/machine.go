package xid

import (
	"errors"
	"fmt"
	"hash/fnv"
	"net"
	"net/netip"
	"os"
	"strconv"
)

// 机器 ID 相关的环境变量。
const (
	// EnvMachineID 显式指定机器 ID（0-65535），优先级最高
	EnvMachineID = "LOGKIT_MACHINE_ID"

	// EnvPodName K8s Downward API 注入的 Pod 名称
	EnvPodName = "POD_NAME"

	// EnvHostname 主机名环境变量
	EnvHostname = "HOSTNAME"
)

// 测试注入点
var (
	osHostname        = os.Hostname
	netInterfaceAddrs = net.InterfaceAddrs
)

// defaultMachineID 按包文档所述的五层策略推导机器 ID。
// 仅 EnvMachineID 的显式分配能保证唯一性，哈希策略有碰撞概率。
func defaultMachineID() (uint16, error) {
	if s := os.Getenv(EnvMachineID); s != "" {
		id, err := strconv.ParseUint(s, 10, 16)
		if err != nil {
			return 0, fmt.Errorf("xid: bad %s value %q: %w", EnvMachineID, s, err)
		}
		return uint16(id), nil
	}

	if pod := os.Getenv(EnvPodName); pod != "" {
		return foldHash(pod), nil
	}
	if host := os.Getenv(EnvHostname); host != "" {
		return foldHash(host), nil
	}

	// os.Hostname 的失败可能携带系统级诊断信息，聚合到最终错误里
	host, hostErr := osHostname()
	if hostErr == nil && host != "" {
		return foldHash(host), nil
	}
	if hostErr == nil {
		hostErr = errors.New("empty hostname")
	}

	id, err := fromPrivateIPv4()
	if err != nil {
		return 0, fmt.Errorf("%w (hostname: %v): %w", ErrNoMachineID, hostErr, err)
	}
	return id, nil
}

// foldHash 把字符串 FNV-1a 哈希后 XOR 折叠为 16 位，
// 比截断低 16 位的分布更均匀。
func foldHash(s string) uint16 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	v := h.Sum32()
	return uint16(v>>16) ^ uint16(v&0xFFFF)
}

// fromPrivateIPv4 取首个私有 IPv4 的低 16 位，sonyflake 的默认策略。
// 多网卡环境下枚举顺序依赖操作系统，重启后机器 ID 可能漂移。
func fromPrivateIPv4() (uint16, error) {
	addrs, err := netInterfaceAddrs()
	if err != nil {
		return 0, err
	}
	for _, addr := range addrs {
		ipnet, ok := addr.(*net.IPNet)
		if !ok {
			continue
		}
		ip, ok := netip.AddrFromSlice(ipnet.IP)
		if !ok {
			continue
		}
		ip = ip.Unmap()
		if !ip.Is4() || ip.IsLoopback() {
			continue
		}
		if ip.IsPrivate() || ip.IsLinkLocalUnicast() {
			b := ip.As4()
			return uint16(b[2])<<8 | uint16(b[3]), nil
		}
	}
	return 0, errors.New("no private IPv4 address")
}
