package permessage

// claimedSlots returns which of the three RSV slots ext claims, indexed
// 0/1/2 for RSV1/RSV2/RSV3.
func claimedSlots(ext Extension) [3]bool {
	return [3]bool{ext.RSV1(), ext.RSV2(), ext.RSV3()}
}

func slotName(i int) string {
	return [3]string{"rsv1", "rsv2", "rsv3"}[i]
}

// rsvConflict reports the first slot ext claims that is already reserved
// by a different extension name.
func (m *Manager) rsvConflict(ext Extension) (slot int, owner string, conflict bool) {
	claims := claimedSlots(ext)
	for i, claimed := range claims {
		if !claimed {
			continue
		}
		if owner := m.rsv[i]; owner != "" && owner != ext.Name() {
			return i, owner, true
		}
	}
	return 0, "", false
}

// reserveRSV claims every slot ext is entitled to that is not already
// reserved. It never overwrites an existing owner; callers must have
// already checked rsvConflict.
func (m *Manager) reserveRSV(ext Extension) {
	claims := claimedSlots(ext)
	for i, claimed := range claims {
		if claimed && m.rsv[i] == "" {
			m.rsv[i] = ext.Name()
		}
	}
}

// ValidFrameRSV reports whether frame's set RSV bits are all permitted by
// the union of active sessions' permissions. An unclaimed bit must be
// zero on the frame.
func (m *Manager) ValidFrameRSV(frame Frame) bool {
	var allowed RSVPermission
	for _, s := range m.sessions {
		p := s.ValidFrameRSV(frame)
		allowed.RSV1 = allowed.RSV1 || p.RSV1
		allowed.RSV2 = allowed.RSV2 || p.RSV2
		allowed.RSV3 = allowed.RSV3 || p.RSV3
	}
	if frame.RSV1 && !allowed.RSV1 {
		return false
	}
	if frame.RSV2 && !allowed.RSV2 {
		return false
	}
	if frame.RSV3 && !allowed.RSV3 {
		return false
	}
	return true
}
