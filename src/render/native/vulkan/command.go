package vulkan

import (
	vk "github.com/vulkan-go/vulkan"

	"vkgraph/src/render/native"
)

func (d *Driver) CreateCommandPool(device native.Handle, info *native.CommandPoolCreateInfo) (native.Handle, native.Result) {
	ci := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		Flags:            vk.CommandPoolCreateFlags(info.Flags),
		QueueFamilyIndex: info.QueueFamilyIndex,
	}
	var pool vk.CommandPool
	if res := vk.CreateCommandPool(d.device(device), &ci, nil, &pool); res != vk.Success {
		return native.NullHandle, result(res)
	}
	return d.objects.put(pool), native.Success
}

func (d *Driver) ResetCommandPool(device, pool native.Handle, flags native.CommandPoolResetFlags) native.Result {
	return result(vk.ResetCommandPool(d.device(device), lookup[vk.CommandPool](&d.objects, pool), vk.CommandPoolResetFlags(flags)))
}

func (d *Driver) DestroyCommandPool(device, pool native.Handle) {
	vk.DestroyCommandPool(d.device(device), take[vk.CommandPool](&d.objects, pool), nil)
}

func (d *Driver) AllocateCommandBuffers(device, pool native.Handle, level native.CommandBufferLevel, count uint32) ([]native.Handle, native.Result) {
	if count == 0 {
		return nil, native.Success
	}
	ai := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        lookup[vk.CommandPool](&d.objects, pool),
		Level:              vk.CommandBufferLevel(level),
		CommandBufferCount: count,
	}
	bufs := make([]vk.CommandBuffer, count)
	if res := vk.AllocateCommandBuffers(d.device(device), &ai, bufs); res != vk.Success {
		return nil, result(res)
	}
	hs := make([]native.Handle, count)
	for i, b := range bufs {
		hs[i] = d.objects.put(b)
	}
	return hs, native.Success
}

func (d *Driver) ResetCommandBuffer(commandBuffer native.Handle, flags native.CommandBufferResetFlags) native.Result {
	return result(vk.ResetCommandBuffer(lookup[vk.CommandBuffer](&d.objects, commandBuffer), vk.CommandBufferResetFlags(flags)))
}

func (d *Driver) FreeCommandBuffers(device, pool native.Handle, buffers []native.Handle) {
	if len(buffers) == 0 {
		return
	}
	bufs := make([]vk.CommandBuffer, len(buffers))
	for i, h := range buffers {
		bufs[i] = take[vk.CommandBuffer](&d.objects, h)
	}
	vk.FreeCommandBuffers(d.device(device), lookup[vk.CommandPool](&d.objects, pool), uint32(len(bufs)), bufs)
}

func (d *Driver) CreateFence(device native.Handle, info *native.FenceCreateInfo) (native.Handle, native.Result) {
	ci := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
		Flags: vk.FenceCreateFlags(info.Flags),
	}
	var fence vk.Fence
	if res := vk.CreateFence(d.device(device), &ci, nil, &fence); res != vk.Success {
		return native.NullHandle, result(res)
	}
	return d.objects.put(fence), native.Success
}

func (d *Driver) ResetFences(device native.Handle, fences []native.Handle) native.Result {
	fs := lookupAll[vk.Fence](&d.objects, fences)
	return result(vk.ResetFences(d.device(device), uint32(len(fs)), fs))
}

func (d *Driver) WaitForFences(device native.Handle, fences []native.Handle, waitAll bool, timeout uint64) native.Result {
	fs := lookupAll[vk.Fence](&d.objects, fences)
	return result(vk.WaitForFences(d.device(device), uint32(len(fs)), fs, boolean(waitAll), timeout))
}

func (d *Driver) GetFenceStatus(device, fence native.Handle) native.Result {
	return result(vk.GetFenceStatus(d.device(device), lookup[vk.Fence](&d.objects, fence)))
}

func (d *Driver) DestroyFence(device, fence native.Handle) {
	vk.DestroyFence(d.device(device), take[vk.Fence](&d.objects, fence), nil)
}

func (d *Driver) CreateSemaphore(device native.Handle, info *native.SemaphoreCreateInfo) (native.Handle, native.Result) {
	ci := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
		Flags: vk.SemaphoreCreateFlags(info.Flags),
	}
	var sem vk.Semaphore
	if res := vk.CreateSemaphore(d.device(device), &ci, nil, &sem); res != vk.Success {
		return native.NullHandle, result(res)
	}
	return d.objects.put(sem), native.Success
}

func (d *Driver) DestroySemaphore(device, semaphore native.Handle) {
	vk.DestroySemaphore(d.device(device), take[vk.Semaphore](&d.objects, semaphore), nil)
}
